// Package callback runs the embedded HTTP listener that receives
// motion events pushed by the hub.
//
// The hub is told about this listener during home-automation
// registration and then POSTs a base64-encoded JSON body to
// /hub/{serial}/events whenever shades move. Decoded batches are
// handed to a Sink (the bridge server) for ordering and publishing;
// configuration-mismatch notices are logged and dropped.
//
// The listener follows the usual lifecycle:
//
//	l, err := callback.New(cfg, sink, logger)
//	l.Start()
//	defer l.Close()
package callback
