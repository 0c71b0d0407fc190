package model

// Result is the outcome of a gameplay operation. Precondition failures and
// not-found conditions are reported with OK=false and a user-facing message
// rather than as Go errors, so one bad command never disturbs the chat loop.
type Result struct {
	OK      bool
	Message string

	// Whisper carries an out-of-band private notification (portal found,
	// extraction congratulations). Empty when none.
	Whisper string

	// Side-channel flags
	Extracted      bool // player escaped the Gutter this call
	MobDefeated    bool // roaming mob was destroyed this call
	PlayerDefeated bool // player hit 0 HP against a roaming mob
}

// Failure builds an OK=false result with the given message
func Failure(message string) Result {
	return Result{OK: false, Message: message}
}

// Success builds an OK=true result with the given message
func Success(message string) Result {
	return Result{OK: true, Message: message}
}
