package device

import "gbcart/cartridge"

// Command runs with exclusive ownership of the cartridge bus and bank buffer.
type Command interface {
	Execute(cart *cartridge.Cartridge) error
}

type Completion func(Command, error)

type CommandWithCompletion struct {
	Command    Command
	Completion Completion
}

type CommandSequence []CommandWithCompletion

func (seq CommandSequence) EnqueueTo(queue *Queue) (err error) {
	for _, cmd := range seq {
		err = queue.Enqueue(cmd)
		if err != nil {
			return
		}
	}
	return
}

// CallbackCommand adapts a plain function into a Command.
type CallbackCommand func(cart *cartridge.Cartridge) error

func (f CallbackCommand) Execute(cart *cartridge.Cartridge) error {
	return f(cart)
}

// Special Command to close the cartridge and stop the queue
type CloseCommand struct{}

func (c *CloseCommand) Execute(cart *cartridge.Cartridge) error {
	return nil
}
