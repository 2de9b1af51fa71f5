package tensor

// creationOptions carries the recognized options of the creation API. Each
// creation function documents which options it recognizes; unrecognized
// options are ignored so call sites stay uniform.
type creationOptions struct {
	dtype       DataType
	hasDType    bool
	device      Device
	cols        int
	hasCols     bool
	diag     int
	num      int
	endpoint bool
}

// Option configures a creation call.
type Option func(*creationOptions)

// WithDType selects the element dtype. Default: the function's documented
// fallback, usually DefaultDType.
func WithDType(dt DataType) Option {
	return func(o *creationOptions) {
		o.dtype = dt
		o.hasDType = true
	}
}

// WithDevice selects the target device. Default: the process default device.
func WithDevice(d Device) Option {
	return func(o *creationOptions) {
		o.device = d
	}
}

// WithColumns sets the column count m of Eye. Default: m = n (square).
func WithColumns(m int) Option {
	return func(o *creationOptions) {
		o.cols = m
		o.hasCols = true
	}
}

// WithDiagonal selects the k-th diagonal for Eye (k=0 main, k>0 above,
// k<0 below). Default: 0.
func WithDiagonal(k int) Option {
	return func(o *creationOptions) {
		o.diag = k
	}
}

// WithNum sets the sample count of Linspace. Default: 50.
func WithNum(n int) Option {
	return func(o *creationOptions) {
		o.num = n
	}
}

// WithEndpoint controls whether Linspace's stop is the last sample (true) or
// one step beyond it (false). Default: true.
func WithEndpoint(include bool) Option {
	return func(o *creationOptions) {
		o.endpoint = include
	}
}

func applyOptions(opts []Option) creationOptions {
	o := creationOptions{endpoint: true, num: 50}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// resolveDType returns the explicit dtype if one was given, else fallback.
func (o *creationOptions) resolveDType(fallback DataType) DataType {
	if o.hasDType {
		return o.dtype
	}
	return fallback
}

// resolveDevice returns the explicit device if one was given, else the
// process default device.
func (o *creationOptions) resolveDevice() (Device, error) {
	if !o.device.IsZero() {
		return o.device, nil
	}
	return DefaultDevice()
}
