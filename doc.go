/*
Package emojiconv converts a directory of SVG emoji icons into PNG images of a
given resolution and compresses every generated image without loss.

The package provides a command line interface with two subcommands, convert and get-info.
To check the supported options type:

	$ emojiconv --help

In case you wish to integrate the API in a self constructed environment here is a simple example:

	package main

	import (
		"context"
		"fmt"
		"os"

		"github.com/esimov/emojiconv"
	)

	func main() {
		sources, err := emojiconv.ListSources("svg")
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}

		c := &emojiconv.Converter{
			Rasterizer: &emojiconv.Rasterizer{Resolution: 512},
			Optimizer:  &emojiconv.Optimizer{},
			Workers:    emojiconv.MinWorkers,
		}
		if _, err := c.Convert(context.Background(), sources, "png"); err != nil {
			fmt.Printf("Error converting the images: %s", err.Error())
		}
	}
*/
package emojiconv
