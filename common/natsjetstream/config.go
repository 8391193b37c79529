package natsjetstream

import "time"

type Config struct {
	URL           string
	Name          string
	MaxReconnect  int
	ReconnectWait time.Duration
	Timeout       time.Duration
}

type StreamConfig struct {
	Name     string
	Subjects []string
	MaxAge   time.Duration
}

// ConsumerConfig describes a pull consumer. Leaving Durable empty creates an
// ephemeral consumer that only sees messages published after it starts.
type ConsumerConfig struct {
	StreamName     string
	ConsumerName   string
	Durable        string
	FilterSubjects []string
	AckPolicy      string
	AckWait        time.Duration
	MaxDeliver     int
	MaxAckPending  int
}
