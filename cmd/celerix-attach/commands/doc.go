// Package commands defines the celerix-attach CLI.
//
// Commands
//
//   - ping         Check that the daemon answers
//   - list         List items
//   - get          Show one item
//   - create       Create an item, optionally uploading a photo and a file
//   - set-photo    Replace an item's photo
//   - set-file     Replace an item's file
//   - clear        Delete an item's photo or file
//   - delete       Delete an item and its attachments
//
// The daemon address comes from --addr, then CELERIX_ATTACH_ADDR, then
// localhost:7002. Set CELERIX_DISABLE_TLS=true to talk plain HTTP.
package commands
