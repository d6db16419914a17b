// Package shoutcast opens Icecast and Shoutcast streams for metadata
// extraction.
//
// It started as a fork of github.com/romantomjak/shoutcast and now:
//   - resolves .pls and .m3u playlist URLs to the actual stream URL
//   - strips ICY metadata blocks so only stream bytes are returned, reporting
//     each new StreamTitle through a callback
//   - passes Ogg streams, which carry metadata in band, through untouched
//   - never times out while a stream is being read
package shoutcast
