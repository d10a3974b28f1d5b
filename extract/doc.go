// Package extract turns staged files into text segments ready for
// chunking. Each supported format has an Adapter; the Registry maps
// pipeline routes to adapters and accepts replacements, so embedding
// applications can swap in their own parsers.
package extract
