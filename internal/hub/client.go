package hub

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"time"
)

// defaultRequestTimeout bounds every hub API call. The hub can take tens of
// seconds to answer while shades are moving, so this stays generous.
const defaultRequestTimeout = 60 * time.Second

// Motion is a named shade movement verb.
type Motion string

// Motion verbs accepted by the hub.
const (
	MotionUp        Motion = "up"
	MotionDown      Motion = "down"
	MotionStop      Motion = "stop"
	MotionJog       Motion = "jog"
	MotionCalibrate Motion = "calibrate"
	MotionHeart     Motion = "heart"
)

// valid reports whether the motion verb is one the hub understands.
func (m Motion) valid() bool {
	switch m {
	case MotionUp, MotionDown, MotionStop, MotionJog, MotionCalibrate, MotionHeart:
		return true
	default:
		return false
	}
}

// RefreshKind selects which shade attribute a refresh call re-reads from
// the shade itself rather than the hub's cache.
type RefreshKind int

// Refresh kinds.
const (
	RefreshPosition RefreshKind = iota
	RefreshBattery
)

// Client talks to a single hub address over its REST API.
//
// Methods are safe for concurrent use. A Client is bound to one address;
// when rediscovery finds the hub at a new IP, construct a new Client.
type Client struct {
	base string
	http *http.Client
}

// NewClient creates a client for the hub at addr (hostname or IP).
//
// Parameters:
//   - addr: Hub hostname or IP address, without scheme
//   - timeout: Per-request timeout; zero selects the 60s default
//
// Returns:
//   - *Client: Ready to use; no connection is made until the first call
func NewClient(addr string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	return &Client{
		base: "http://" + addr,
		http: &http.Client{Timeout: timeout},
	}
}

// Addr returns the address the client is bound to, without scheme.
func (c *Client) Addr() string {
	return c.base[len("http://"):]
}

// UserData reads the hub's identity record (serial number, name, IP).
func (c *Client) UserData(ctx context.Context) (*UserData, error) {
	var resp userDataResponse
	if err := c.get(ctx, "api/userdata", &resp); err != nil {
		return nil, err
	}
	return &resp.UserData, nil
}

// ListRooms returns all rooms, sorted by (order, name).
func (c *Client) ListRooms(ctx context.Context) ([]RoomData, error) {
	var resp roomsResponse
	if err := c.get(ctx, "api/rooms", &resp); err != nil {
		return nil, err
	}

	rooms := resp.RoomData
	sort.SliceStable(rooms, func(i, j int) bool {
		if rooms[i].Order != rooms[j].Order {
			return rooms[i].Order < rooms[j].Order
		}
		return rooms[i].Name < rooms[j].Name
	})
	return rooms, nil
}

// ListShades returns all shades, sorted by (order, name).
func (c *Client) ListShades(ctx context.Context) ([]ShadeData, error) {
	var resp shadesResponse
	if err := c.get(ctx, "api/shades", &resp); err != nil {
		return nil, err
	}

	shades := resp.ShadeData
	sort.SliceStable(shades, func(i, j int) bool {
		if shades[i].sortOrder() != shades[j].sortOrder() {
			return shades[i].sortOrder() < shades[j].sortOrder()
		}
		return shades[i].sortName() < shades[j].sortName()
	})
	return shades, nil
}

// ListScenes returns all scenes, sorted by (order, name).
func (c *Client) ListScenes(ctx context.Context) ([]SceneData, error) {
	var resp scenesResponse
	if err := c.get(ctx, "api/scenes", &resp); err != nil {
		return nil, err
	}

	scenes := resp.SceneData
	sort.SliceStable(scenes, func(i, j int) bool {
		if scenes[i].Order != scenes[j].Order {
			return scenes[i].Order < scenes[j].Order
		}
		return scenes[i].Name < scenes[j].Name
	})
	return scenes, nil
}

// ShadeByID reads a single shade from the hub's cache.
func (c *Client) ShadeByID(ctx context.Context, id int) (*ShadeData, error) {
	var resp shadeResponse
	if err := c.get(ctx, fmt.Sprintf("api/shades/%d", id), &resp); err != nil {
		return nil, err
	}
	return &resp.Shade, nil
}

// RefreshShade asks the hub to re-read an attribute directly from the
// shade's motor before answering. This is slow (the hub radios the shade)
// but returns live data instead of the hub's cache.
func (c *Client) RefreshShade(ctx context.Context, id int, kind RefreshKind) (*ShadeData, error) {
	query := "refresh=true"
	if kind == RefreshBattery {
		query = "updateBatteryLevel=true"
	}

	var resp shadeResponse
	if err := c.get(ctx, fmt.Sprintf("api/shades/%d?%s", id, query), &resp); err != nil {
		return nil, err
	}
	return &resp.Shade, nil
}

// MoveShade starts a named movement on a shade.
func (c *Client) MoveShade(ctx context.Context, id int, motion Motion) (*ShadeData, error) {
	if !motion.valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidMotion, motion)
	}

	body := map[string]any{
		"shade": map[string]any{
			"motion": string(motion),
		},
	}

	var resp shadeResponse
	if err := c.put(ctx, fmt.Sprintf("api/shades/%d", id), body, &resp); err != nil {
		return nil, err
	}
	return &resp.Shade, nil
}

// ChangePosition moves a shade to an absolute position.
func (c *Client) ChangePosition(ctx context.Context, id int, positions ShadePosition) (*ShadeData, error) {
	body := map[string]any{
		"shade": map[string]any{
			"id":        id,
			"positions": positions,
		},
	}

	var resp shadeResponse
	if err := c.put(ctx, fmt.Sprintf("api/shades/%d", id), body, &resp); err != nil {
		return nil, err
	}
	return &resp.Shade, nil
}

// SetPowerSource tells the hub how a shade is powered. This affects how
// the hub interprets battery readings.
func (c *Client) SetPowerSource(ctx context.Context, id int, kind BatteryKind) error {
	switch kind {
	case PowerHardwired, PowerBatteryWand, PowerRechargeable:
	default:
		return fmt.Errorf("%w: %d", ErrInvalidPowerSource, kind)
	}

	body := map[string]any{
		"shade": map[string]any{
			"batteryKind": int(kind),
		},
	}

	var resp shadeResponse
	return c.put(ctx, fmt.Sprintf("api/shades/%d", id), body, &resp)
}

// ActivateScene runs a scene and returns the ids of the shades it moved.
func (c *Client) ActivateScene(ctx context.Context, sceneID int) ([]int, error) {
	var resp activateSceneResponse
	if err := c.get(ctx, fmt.Sprintf("api/scenes?sceneId=%d", sceneID), &resp); err != nil {
		return nil, err
	}
	return resp.ShadeIDs, nil
}

// RegisterCallback tells the hub to POST motion events to url.
//
// The hub pushes shade movement notifications to the registered address,
// letting the bridge publish position changes without polling mid-motion.
func (c *Client) RegisterCallback(ctx context.Context, url string) error {
	body := map[string]any{
		"homeautomation": map[string]any{
			"enabled": true,
			"postUrl": url,
		},
	}
	return c.put(ctx, "api/homeautomation", body, nil)
}

// get performs a GET against the hub and decodes the JSON response.
func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+"/"+path, nil)
	if err != nil {
		return fmt.Errorf("building request for %s: %w", path, err)
	}
	return c.do(req, out)
}

// put performs a PUT with a JSON body and decodes the JSON response.
func (c *Client) put(ctx context.Context, path string, body any, out any) error {
	encoded, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encoding request for %s: %w", path, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.base+"/"+path, bytes.NewReader(encoded))
	if err != nil {
		return fmt.Errorf("building request for %s: %w", path, err)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req, out)
}

// do executes the request, mapping transport failures to ErrHubUnresponsive,
// 404 answers to ErrNotFound, and other non-2xx answers to
// ErrUnexpectedStatus with the body included.
func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %v", ErrHubUnresponsive, req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %s %s", ErrNotFound, req.Method, req.URL.Path)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("%w: %s %s: %s: %s",
			ErrUnexpectedStatus, req.Method, req.URL.Path, resp.Status, bytes.TrimSpace(body))
	}

	if out == nil {
		return nil
	}

	// Lenient decode: unknown fields from newer hub firmware are ignored.
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response for %s: %w", req.URL.Path, err)
	}
	return nil
}
