package account

import "encoding/base64"

// PHC strings use unpadded standard base64 for the salt and hash segments.
var phcEncoding = base64.RawStdEncoding

func b64encode(b []byte) string {
	return phcEncoding.EncodeToString(b)
}

func b64decode(s string) ([]byte, error) {
	return phcEncoding.DecodeString(s)
}
