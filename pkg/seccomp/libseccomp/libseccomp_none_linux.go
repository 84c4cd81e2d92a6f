//go:build !libseccomp

package libseccomp

func newLibseccompEmitter() (Emitter, error) {
	return nil, ErrNoLibseccomp
}
