//go:build !linux

package main

import "context"

func sampleSelf(ctx context.Context) (resourceSample, error) {
	return sampleSelfPS(ctx)
}
