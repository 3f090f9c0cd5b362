package utils

// TruncateAddress shortens a hex address for display: 0x1234...abcd.
// Strings too short to shorten are returned unchanged.
func TruncateAddress(address string) string {
	const head, tail = 6, 4
	if len(address) <= head+tail+3 {
		return address
	}
	return address[:head] + "..." + address[len(address)-tail:]
}
