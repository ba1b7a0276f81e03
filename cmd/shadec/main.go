// Command shadec links shader module sets and renders their entry
// points as per-target source text.
//
// Usage:
//
//	shadec <command> [flags]
//
// Examples:
//
//	shadec demo                          # Compile the built-in demo program
//	shadec demo -t hlsl -o out           # HLSL only, into ./out
//	shadec demo --entry 'main#(float4)'  # One entry point
//	shadec targets                       # List supported targets
package main

func main() {
	newRootCommand().execute()
}
