package game

import "time"

type realTickerChannelCreator struct{}

func NewRealTickerChannelCreator() realTickerChannelCreator {
	return realTickerChannelCreator{}
}

func (realTickerChannelCreator) Create(duration time.Duration) <-chan time.Time {
	return time.NewTicker(duration).C
}
