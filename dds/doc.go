/*
Package dds decodes DDS and Arma/DayZ EDDS (Enfusion DDS) textures into RGBA
images and registers itself with the image package under the name "dds".

EDDS stores a DDS header followed by a block table and block bodies per mipmap
level (smallest to largest). Blocks may be uncompressed (COPY) or LZ4
compressed using the Enfusion chunk-stream format with a rolling 64KB
dictionary. Plain DDS files store the largest level directly after the header.
Only the largest level is decoded.
*/
package dds
