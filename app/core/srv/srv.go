package srv

type Srv struct {
	ai        *AISrv
	streaming *StreamingSrv
}

type ApplyFunc func(*Srv)

func SetupSrvs(opts ...ApplyFunc) *Srv {
	s := &Srv{}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Srv) AI() *AISrv {
	return s.ai
}

func (s *Srv) Streaming() *StreamingSrv {
	return s.streaming
}
