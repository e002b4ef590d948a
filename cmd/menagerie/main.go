// Command menagerie fine-tunes a pre-built MobileNetV2 checkpoint on a small
// per-class image dataset and verifies the exported model on held-out images.
package main

import "os"

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
