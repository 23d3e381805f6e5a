// Package payment ödeme sağlayıcısını opak bir yetenek olarak tutar.
// Çekirdek yalnızca sağlayıcının string referanslarını saklar; tahsilat
// ve iade çağrılarının gerçeği sağlayıcı webhooklarından gelir.
package payment

import "log"

type Gateway interface {
	// Refund online ödenen bir siparişin iadesini sağlayıcıda başlatır.
	Refund(externalRef string, amountCents int64) error
}

// LogGateway: sağlayıcı entegrasyonu bağlanana kadar kullanılan stub.
type LogGateway struct{}

func (LogGateway) Refund(externalRef string, amountCents int64) error {
	log.Printf("ödeme iadesi istendi: ref=%s tutar=%d kuruş", externalRef, amountCents)
	return nil
}
