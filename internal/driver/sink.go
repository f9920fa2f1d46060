package driver

// Status describes where a single file is in the resolution pipeline.
type Status string

const (
	StatusQueued    Status = "queued"
	StatusResolving Status = "resolving"
	StatusDone      Status = "done"
	StatusError     Status = "error"
)

// Event reports progress for one file.
type Event struct {
	File   string
	Status Status
}

// Sink receives progress events during a batch resolution.
type Sink interface {
	OnEvent(evt Event)
}

// ChannelSink forwards events into a channel.
type ChannelSink struct {
	Ch chan<- Event
}

func (s ChannelSink) OnEvent(evt Event) {
	if s.Ch == nil {
		return
	}
	s.Ch <- evt
}
