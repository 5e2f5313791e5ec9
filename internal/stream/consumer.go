package stream

// Funcs adapts plain functions to the Consumer interface. Either field may
// be nil.
type Funcs struct {
	Chunk func(chunk string)
	Close func()
}

func (f Funcs) OnChunk(chunk string) {
	if f.Chunk != nil {
		f.Chunk(chunk)
	}
}

func (f Funcs) OnClose() {
	if f.Close != nil {
		f.Close()
	}
}
