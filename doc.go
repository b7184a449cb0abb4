/*
Package gputex decodes GPU texture containers into upload-ready descriptors.

PKM (ETC1/ETC2/EAC) and KTX v1 payloads are passed through compressed, tagged
with their OpenGL internal format. Any other name is decoded by a raster
decoder into non-premultiplied RGBA8. Names ending in .zst or .lz4 are
decompressed first and dispatched on the remaining suffix.

Decoder performs one synchronous decode per call. Loader runs decodes on a
worker pool and reports each request exactly once to a Sink, carrying the
caller's correlation handles back unchanged.
*/
package gputex
