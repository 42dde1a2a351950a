//go:build !windows && !(linux && (amd64 || 386))

package hal

func newWinRing0(_ Opts) (PortIO, error) {
	return nil, ErrUnsupportedPlatform
}

func newDevPort(_ Opts) (PortIO, error) {
	return nil, ErrUnsupportedPlatform
}
