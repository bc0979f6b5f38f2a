package calibration

// symmetricData returns a valid 5-point calibration on a 1920x1080 screen.
func symmetricData() *Data {
	return NewData(1920, 1080, []Point{
		{ScreenX: 960, ScreenY: 540, GazeX: 0, GazeY: 0, SampleCount: 90},
		{ScreenX: 192, ScreenY: 540, GazeX: -0.8, GazeY: 0, SampleCount: 90},
		{ScreenX: 1728, ScreenY: 540, GazeX: 0.8, GazeY: 0, SampleCount: 90},
		{ScreenX: 960, ScreenY: 162, GazeX: 0, GazeY: -0.6, SampleCount: 90},
		{ScreenX: 960, ScreenY: 918, GazeX: 0, GazeY: 0.6, SampleCount: 90},
	})
}
