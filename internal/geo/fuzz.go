// Package geo holds the coordinate-obfuscation primitives. Two distinct
// strategies coexist on purpose: nearby-list display recomputes a fresh
// offset on every read, while post locations are jittered exactly once at
// write time and the exact coordinate is never stored.
package geo

import "math/rand"

const (
	// DefaultFuzzDegrees is the full magnitude of the per-read offset applied
	// to nearby-user coordinates. Roughly 150-300m depending on latitude.
	DefaultFuzzDegrees = 0.003

	// DefaultJitterDegrees bounds the one-time offset applied to post
	// coordinates when the author asks to hide the exact location.
	DefaultJitterDegrees = 0.005
)

// EphemeralFuzz returns the coordinates shifted by independent uniform deltas
// in [-magnitude/2, magnitude/2) per axis. The offset is drawn fresh on every
// call and must not be persisted; the same stored location will jitter
// between refreshes.
func EphemeralFuzz(lat, lng, magnitude float64) (float64, float64) {
	if magnitude <= 0 {
		magnitude = DefaultFuzzDegrees
	}
	return lat + offset(magnitude/2), lng + offset(magnitude/2)
}

// PersistedJitter returns the coordinates shifted by independent uniform
// deltas in [-radius, radius) per axis. Callers store the result in place of
// the submitted coordinates.
func PersistedJitter(lat, lng, radius float64) (float64, float64) {
	if radius <= 0 {
		radius = DefaultJitterDegrees
	}
	return lat + offset(radius), lng + offset(radius)
}

func offset(bound float64) float64 {
	return (rand.Float64()*2 - 1) * bound
}
