package internal

import (
	"bytes"
	"fmt"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

func init() {
	// pdfcpu по умолчанию пишет config.yml в домашний каталог, нам это не нужно
	model.ConfigPath = "disable"
}

func pdfConfig() *model.Configuration {
	return model.NewDefaultConfiguration()
}

// DecryptEmptyPassword removes encryption from a PDF whose user password is
// empty. Documents that need a real password fail here.
func DecryptEmptyPassword(data []byte) ([]byte, error) {
	conf := pdfConfig()
	conf.UserPW = ""

	var out bytes.Buffer
	if err := api.Decrypt(bytes.NewReader(data), &out, conf); err != nil {
		return nil, fmt.Errorf("failed to decrypt PDF: %w", err)
	}
	return out.Bytes(), nil
}

// PageCount reports the number of pages pdfcpu sees in the document.
func PageCount(data []byte) (int, error) {
	n, err := api.PageCount(bytes.NewReader(data), pdfConfig())
	if err != nil {
		return 0, fmt.Errorf("failed to count pages: %w", err)
	}
	return n, nil
}
