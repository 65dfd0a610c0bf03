package password

type Params struct {
	Memory      uint32 // kibibytes
	Iterations  uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

// DefaultParams is ~128MiB, t=3. Config may raise them via ARGON2_* vars.
func DefaultParams() Params {
	return Params{
		Memory:      131072,
		Iterations:  3,
		Parallelism: 1,
		SaltLength:  16,
		KeyLength:   32,
	}
}
