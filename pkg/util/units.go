package util

// SamplesToMicroseconds converts a sample count at sampleRate Hz to microseconds.
func SamplesToMicroseconds(samples int64, sampleRate int) float64 {
	return float64(samples) / float64(sampleRate) * 1e6
}

// MicrosecondsToSamples is the inverse of SamplesToMicroseconds.
func MicrosecondsToSamples(us float64, sampleRate int) float64 {
	return us * float64(sampleRate) / 1e6
}
