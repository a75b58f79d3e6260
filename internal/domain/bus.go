package domain

// MessageBus carries inbound events from transports to the dispatcher.
type MessageBus interface {
	Publish(evt InboundEvent)
	Subscribe() <-chan InboundEvent
	Close()
}
