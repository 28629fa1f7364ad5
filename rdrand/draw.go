package rdrand

// draw calls attempt until it reports success and returns that value. There
// is no bound on the number of attempts.
func draw(attempt func() (uint64, bool)) uint64 {
	for {
		if v, ok := attempt(); ok {
			return v
		}
	}
}
