// Package analysis inspects recorded body traces offline.
//
//   - [PowerSpectrum] and [DominantFrequency]: spectrum of a height series
//   - [HeightPortrait]: height against vertical velocity for one body
//   - [Bounces]: floor impacts with their effective restitution
//
// A body bouncing with restitution near one shows a sharp dominant
// frequency; one settling to rest shows a spread spectrum and falling
// bounce speeds:
//
//	times, heights := trace.Heights("sphere")
//	hz, _ := analysis.DominantFrequency(heights, 60)
package analysis
