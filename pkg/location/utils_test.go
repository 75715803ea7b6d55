package location

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseNmcliWiFi(t *testing.T) {
	output := "AA\\:BB\\:CC\\:DD\\:EE\\:FF:72\n" +
		"00\\:14\\:22\\:01\\:23\\:45:40\n" +
		"not-a-mac:10\n" +
		"11\\:22\\:33\\:44\\:55\\:66:weak\n" +
		"\n"

	aps, err := parseNmcliWiFi(output)

	require.NoError(t, err)
	require.Len(t, aps, 2)
	assert.Equal(t, "AA:BB:CC:DD:EE:FF", aps[0].MACAddress)
	assert.Equal(t, 72.0, aps[0].SignalStrength)
	assert.Equal(t, "00:14:22:01:23:45", aps[1].MACAddress)
}

func TestParseMmcliCell(t *testing.T) {
	output := "modem.location.3gpp.mcc : 214\n" +
		"modem.location.3gpp.mnc : 7\n" +
		"modem.location.3gpp.lac : 0A1B\n" +
		"modem.location.3gpp.cid : 01C2D3E4\n"

	cells, err := parseMmcliCell(output)

	require.NoError(t, err)
	require.Len(t, cells, 1)
	assert.Equal(t, 214, cells[0].MobileCountryCode)
	assert.Equal(t, 7, cells[0].MobileNetworkCode)
	assert.Equal(t, 0x0A1B, cells[0].LocationAreaCode)
	assert.Equal(t, 0x01C2D3E4, cells[0].CellID)
}

func TestParseMmcliCell_Incomplete(t *testing.T) {
	_, err := parseMmcliCell("modem.location.3gpp.lac : 0A1B\n")

	assert.Error(t, err)
}

func TestIsValidMAC(t *testing.T) {
	assert.True(t, isValidMAC("ff:ff:ff:ff:ff:ff"))
	assert.False(t, isValidMAC("ff:ff:ff:ff:ff"))
	assert.False(t, isValidMAC("gg:ff:ff:ff:ff:ff"))
	assert.False(t, isValidMAC("fff:f:ff:ff:ff:ff"))
}
