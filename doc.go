/*
Package boxscale is an area averaging (box filter) image resampling library.
Every pixel of the resampled image is the arithmetic mean of the source pixels
its area covers, computed independently on the four RGBA channels, without
relying on any platform provided resize primitive.

The package provides a command line interface, supporting various flags for different types of rescaling operations.
To check the supported commands type:

	$ boxscale --help

In case you wish to integrate the API in a self constructed environment here is a simple example:

	package main

	import (
		"fmt"
		"github.com/esimov/boxscale"
	)

	func main() {
		width, height := 640, 480
		pixels := make([]uint8, width*height*4)
		src, _ := boxscale.NewRasterFromPix(width, height, pixels)

		dst, err := boxscale.Resample(src, width/2, height/2)
		if err != nil {
			fmt.Printf("Error rescaling image: %s", err.Error())
			return
		}
		fmt.Printf("Resampled to %dx%d\n", dst.Width, dst.Height)
	}

Image files can be handled through a Processor:

	p := &boxscale.Processor{
		NewWidth:  640,
		KeepRatio: true,
	}
	if err := p.Process(in, out); err != nil {
		fmt.Printf("Error rescaling image: %s", err.Error())
	}
*/
package boxscale
