package app

import "github.com/dkeye/Tandem/internal/domain"

type BackpressureAction int

const (
	NoAction BackpressureAction = iota
	DropFrame
	KickConnection
)

type Policy interface {
	OnBackPressure(h domain.ConnHandle) BackpressureAction
}

type SimplePolicy struct{}

func (SimplePolicy) OnBackPressure(domain.ConnHandle) BackpressureAction {
	return KickConnection
}

type DropPolicy struct{}

func (DropPolicy) OnBackPressure(domain.ConnHandle) BackpressureAction {
	return DropFrame
}

// PolicyByName maps the config value to a policy; unknown names kick.
func PolicyByName(name string) Policy {
	if name == "drop" {
		return DropPolicy{}
	}
	return SimplePolicy{}
}
