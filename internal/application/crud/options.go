package crud

// Options is the CRUD permission configuration of one entity type. It is
// copied at registration and never changes afterwards.
type Options struct {
	EnableCreate bool
	EnableRead   bool
	EnableUpdate bool
	EnableDelete bool

	Create Validator
	Read   Validator
	Update Validator
	Delete Validator

	ErrorStrategy ErrorStrategy
	// ObscureErrors replaces UnauthorizedError with ErrObscured under the throw strategy.
	ObscureErrors bool
}

// DefaultOptions enables every operation with public access and the throw strategy.
func DefaultOptions() Options {
	return Options{
		EnableCreate:  true,
		EnableRead:    true,
		EnableUpdate:  true,
		EnableDelete:  true,
		Create:        PublicAccess(),
		Read:          PublicAccess(),
		Update:        PublicAccess(),
		Delete:        PublicAccess(),
		ErrorStrategy: StrategyThrow,
	}
}

// withDefaults fills zero validators with PublicAccess and an empty
// strategy with StrategyThrow.
func (o Options) withDefaults() Options {
	for _, v := range []*Validator{&o.Create, &o.Read, &o.Update, &o.Delete} {
		if v.IsZero() {
			*v = PublicAccess()
		}
	}
	if o.ErrorStrategy == "" {
		o.ErrorStrategy = StrategyThrow
	}
	return o
}

func (o Options) enabled(op Operation) bool {
	switch op {
	case OpCreate:
		return o.EnableCreate
	case OpRead:
		return o.EnableRead
	case OpUpdate:
		return o.EnableUpdate
	case OpDelete:
		return o.EnableDelete
	}
	return false
}

func (o Options) validator(op Operation) Validator {
	switch op {
	case OpCreate:
		return o.Create
	case OpRead:
		return o.Read
	case OpUpdate:
		return o.Update
	case OpDelete:
		return o.Delete
	}
	return Validator{}
}
