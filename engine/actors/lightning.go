package actors

import (
	"fmt"
	"strings"

	"github.com/fiatjaf/go-lnurl"
	decodepay "github.com/nbd-wtf/ln-decodepay"
	"nostrich/engine/library"
)

func DecodeInvoice(invoice string) (b decodepay.Bolt11, e error) {
	bolt11, err := decodepay.Decodepay(invoice)
	if err != nil {
		return b, err
	}
	return bolt11, e
}

func lud16ToUrl(address string) (string, error) {
	split := strings.Split(address, "@")
	if len(split) != 2 || len(split[0]) == 0 || len(split[1]) == 0 {
		return "", fmt.Errorf("invalid lightning address")
	}
	return "https://" + strings.Trim(split[1], "<>") + "/.well-known/lnurlp/" + strings.Trim(split[0], "<>"), nil
}

func urlToLud06(url string) string {
	encodedUrl, err := lnurl.Encode(url)
	if err != nil {
		library.LogCLI(err, 1)
	}
	return encodedUrl
}

func Lud16ToLud06(lud16 string) (string, bool) {
	url, err := lud16ToUrl(lud16)
	if err != nil {
		library.LogCLI(fmt.Sprintf("invalid lud16 %q: %s", lud16, err), 2)
		return "", false
	}
	lud06 := urlToLud06(url)
	if len(lud06) > 0 {
		return lud06, true
	}
	return "", false
}
