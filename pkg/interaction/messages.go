package interaction

import "fmt"

// Spoken and status texts.
const (
	msgStarting         = "Starting guidance."
	msgAskInitial       = "What object would you like me to find? Say the name of an object"
	msgAskWhileRunning  = "Say the new target object, or say any for all objects."
	msgRetryInitial     = "I did not catch a valid target. Please try again."
	msgRetryWhile       = "Did not recognize. Try again."
	msgGiveUp           = "Starting detection for all objects. You can set a target later."
	msgResuming         = "Resuming guidance."
	msgTargetAny        = "Target set to any. Detecting all objects."
	msgCurrencyOnlyMode = "Currency detection is only available in Guidance Mode."
	msgCurrencyStart    = "Detecting currency."
	msgStopped          = "Guidance stopped. Double tap to start."
)

func targetSetMessage(class string, initial bool) string {
	if initial {
		return fmt.Sprintf("Target set to %s. Starting detection now.", class)
	}
	return fmt.Sprintf("Target set to %s.", class)
}

func runningStatus(target string) string {
	if target == "" {
		return "Guidance running. Detecting all objects…"
	}
	return fmt.Sprintf("Guidance running. Looking for %s…", target)
}

func startFailedMessage(reason string) string {
	return "Could not start guidance: " + reason
}

func voiceErrorMessage(code string) string {
	if code == "" {
		code = "unknown error"
	}
	return "Voice error: " + code
}
