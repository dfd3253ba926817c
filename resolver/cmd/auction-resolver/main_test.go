package main

import (
	"testing"

	"github.com/peterldowns/testy/assert"
	"github.com/peterldowns/testy/check"

	"github.com/cloudx-io/secondprice/resolverapi"
)

func TestURLSafeResult(t *testing.T) {
	coseBytes := resolverapi.ResultCOSE([]byte{0xfb, 0xff, 0xfe, 0x01, 0x02})

	urlSafe, err := urlSafeResult(coseBytes.EncodeBase64())
	assert.NoError(t, err)
	check.Equal(t, coseBytes.EncodeURLSafe(), urlSafe)

	decoded, err := urlSafe.Decode()
	assert.NoError(t, err)
	check.Equal(t, coseBytes, decoded)
}

func TestURLSafeResult_Invalid(t *testing.T) {
	_, err := urlSafeResult("not base64!")
	check.Error(t, err)
}

func TestReadJSONInput(t *testing.T) {
	data, err := readJSONInput(`{"reserve":100}`)
	assert.NoError(t, err)
	check.Equal(t, `{"reserve":100}`, string(data))
}
