package config

// SafeErrorMessage hides internal error details from clients in release mode.
func SafeErrorMessage(err error, fallback string) string {
	if err == nil {
		return fallback
	}
	if IsRelease() {
		return fallback
	}
	return err.Error()
}
