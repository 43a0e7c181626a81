package sink

import "github.com/Zereker/chatclient"

type multi []chatclient.Sink

// Multi returns a sink that writes every line to each of sinks in order.
// Nil sinks are skipped.
func Multi(sinks ...chatclient.Sink) chatclient.Sink {
	m := make(multi, 0, len(sinks))
	for _, s := range sinks {
		if s != nil {
			m = append(m, s)
		}
	}
	return m
}

func (m multi) Log(line string) {
	for _, s := range m {
		s.Log(line)
	}
}
