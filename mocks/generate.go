package mocks

//go:generate mockgen -destination=./mock_broker.go -package=mocks KiteBacktest/internal/broker Broker
//go:generate mockgen -destination=./mock_fetcher.go -package=mocks KiteBacktest/internal/collector Fetcher
//go:generate mockgen -destination=./mock_recorder.go -package=mocks KiteBacktest/internal/recorder Recorder
