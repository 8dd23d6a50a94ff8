package crud

// Observer is notified of every permission decision the engine makes.
type Observer interface {
	ObserveDecision(entityType, operation string, allowed bool)
}
