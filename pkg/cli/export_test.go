package cli

var (
	RunScan          = runScan
	ReadInboundEvent = readInboundEvent
	Dispatch         = dispatch
)
