package main

import (
	"fmt"
	"io"
	"time"

	"github.com/schollz/progressbar/v3"
)

const MIN_SIZE_BYTES_TO_SHOW_PROGRESS = 100

type ProgressBar struct {
	quit         chan bool
	done         chan bool
	progressFunc func() int64
	size         int64
	out          io.Writer
}

func InitProgressBar(progressFunc func() int64, size int64, out io.Writer) ProgressBar {
	return ProgressBar{
		quit:         make(chan bool, 1),
		done:         make(chan bool),
		progressFunc: progressFunc,
		size:         size,
		out:          out,
	}
}

func (this ProgressBar) Start() {
	go this.progressBarLoop()
}

// Stop finishes the bar and waits until it is drawn.
func (this ProgressBar) Stop() {
	this.quit <- true
	<-this.done
}

func (this ProgressBar) progressBarLoop() {
	defer close(this.done)
	bar := progressbar.NewOptions64(this.size,
		progressbar.OptionSetWriter(this.out),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowBytes(true),
		progressbar.OptionSetDescription("Bytes read:"))

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			bar.Set64(this.progressFunc())
		case <-this.quit:
			bar.Set64(this.progressFunc())
			bar.Finish()
			fmt.Fprintln(this.out)
			return
		}
	}
}
