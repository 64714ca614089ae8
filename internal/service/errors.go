package service

// PassphraseError reports a missing or empty passphrase argument. It is
// raised before any cryptographic attempt.
type PassphraseError struct {
	message string
}

func (e *PassphraseError) Error() string {
	return e.message
}

// InvalidMasterPasswordError reports that the passphrase does not unlock the
// given private key. The underlying library's error is carried as cause but
// callers only ever need to match this one kind.
type InvalidMasterPasswordError struct {
	message string
	cause   error
}

func (e *InvalidMasterPasswordError) Error() string {
	return e.message
}

func (e *InvalidMasterPasswordError) Unwrap() error {
	return e.cause
}

// AlreadyDecryptedError reports an attempt to decrypt a key that is already
// in the decrypted state, which is a programming error on the caller's side.
type AlreadyDecryptedError struct {
	message string
}

func (e *AlreadyDecryptedError) Error() string {
	return e.message
}
