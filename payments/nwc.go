package payments

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/nbd-wtf/go-nostr"
	"github.com/nbd-wtf/go-nostr/nip04"
	"nostrich/engine/actors"
	"nostrich/engine/library"
)

// NIP-47 wallet connect event kinds.
const (
	KindWalletRequest  = 23194
	KindWalletResponse = 23195
)

// WalletConnect settles invoices through a NIP-47 wallet: a pay_invoice
// request is published to the wallet's relay and we wait, bounded, for its
// response event.
type WalletConnect struct {
	walletPub string
	relayURL  string
	secret    string
	clientPub string
	shared    []byte

	// MaxSats caps what a single invoice may ask for; anything above is
	// refused before it gets near the wallet.
	MaxSats int64
	Wait    time.Duration
}

// ParseWalletConnectURI parses a nostr+walletconnect://<wallet-pubkey>?relay=...&secret=...
// URI into a ready settler.
func ParseWalletConnectURI(uri string) (*WalletConnect, error) {
	if !strings.HasPrefix(uri, "nostr+walletconnect://") {
		return nil, fmt.Errorf("wallet connect URI must start with nostr+walletconnect://")
	}
	// url.Parse chokes on the custom scheme
	parseable := strings.Replace(uri, "nostr+walletconnect://", "https://", 1)
	u, err := url.Parse(parseable)
	if err != nil {
		return nil, fmt.Errorf("invalid wallet connect URI: %w", err)
	}
	walletPub := u.Host
	if len(walletPub) != 64 {
		return nil, fmt.Errorf("invalid wallet pubkey: must be 64 hex characters")
	}
	relay := u.Query().Get("relay")
	if len(relay) == 0 {
		return nil, fmt.Errorf("wallet connect URI must include a relay parameter")
	}
	if !strings.HasPrefix(relay, "wss://") && !strings.HasPrefix(relay, "ws://") {
		return nil, fmt.Errorf("invalid wallet relay URL: %s", relay)
	}
	secret := u.Query().Get("secret")
	if len(secret) != 64 {
		return nil, fmt.Errorf("invalid wallet connect secret: must be 64 hex characters")
	}
	clientPub, err := nostr.GetPublicKey(secret)
	if err != nil {
		return nil, fmt.Errorf("could not derive pubkey from secret: %w", err)
	}
	shared, err := nip04.ComputeSharedSecret(walletPub, secret)
	if err != nil {
		return nil, fmt.Errorf("could not compute conversation key: %w", err)
	}
	return &WalletConnect{
		walletPub: walletPub,
		relayURL:  relay,
		secret:    secret,
		clientPub: clientPub,
		shared:    shared,
		MaxSats:   1000,
		Wait:      time.Second * 15,
	}, nil
}

type walletRequest struct {
	Method string `json:"method"`
	Params any    `json:"params"`
}

type payInvoiceParams struct {
	Invoice string `json:"invoice"`
}

type walletResponse struct {
	ResultType string          `json:"result_type"`
	Error      *walletError    `json:"error,omitempty"`
	Result     json.RawMessage `json:"result,omitempty"`
}

type walletError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (w *WalletConnect) Settle(invoice string) error {
	bolt11, err := actors.DecodeInvoice(invoice)
	if err != nil {
		return fmt.Errorf("could not decode invoice: %w", err)
	}
	sats := bolt11.MSatoshi / 1000
	if w.MaxSats > 0 && sats > w.MaxSats {
		return fmt.Errorf("invoice for %d sats is over the %d sat limit", sats, w.MaxSats)
	}
	b, err := json.Marshal(walletRequest{Method: "pay_invoice", Params: payInvoiceParams{Invoice: invoice}})
	if err != nil {
		return err
	}
	ciphertext, err := nip04.Encrypt(string(b), w.shared)
	if err != nil {
		return err
	}
	request := nostr.Event{
		PubKey:    w.clientPub,
		CreatedAt: nostr.Now(),
		Kind:      KindWalletRequest,
		Tags:      nostr.Tags{nostr.Tag{"p", w.walletPub}},
		Content:   ciphertext,
	}
	if err := request.Sign(w.secret); err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), w.Wait)
	defer cancel()
	relay, err := nostr.RelayConnect(ctx, w.relayURL)
	if err != nil {
		return fmt.Errorf("could not reach wallet relay %s: %w", w.relayURL, err)
	}
	defer relay.Close()
	filters := nostr.Filters{{
		Kinds:   []int{KindWalletResponse},
		Authors: []string{w.walletPub},
		Tags:    nostr.TagMap{"e": []string{request.ID}},
	}}
	sub, err := relay.Subscribe(ctx, filters)
	if err != nil {
		return err
	}
	defer sub.Unsub()
	if err := relay.Publish(ctx, request); err != nil {
		return err
	}
	for {
		select {
		case ev, ok := <-sub.Events:
			if !ok || ev == nil {
				return fmt.Errorf("wallet relay closed the stream")
			}
			plaintext, err := nip04.Decrypt(ev.Content, w.shared)
			if err != nil {
				library.LogCLI(err.Error(), 2)
				continue
			}
			var response walletResponse
			if err := json.Unmarshal([]byte(plaintext), &response); err != nil {
				library.LogCLI(err.Error(), 2)
				continue
			}
			if response.Error != nil {
				return fmt.Errorf("wallet refused payment: %s %s", response.Error.Code, response.Error.Message)
			}
			library.LogCLI(fmt.Sprintf("settled %d sat invoice %s", sats, bolt11.PaymentHash), 4)
			return nil
		case <-ctx.Done():
			return fmt.Errorf("no wallet response within %s", w.Wait)
		}
	}
}

// NoSettler is what runs when no wallet is configured: every settlement
// attempt fails loudly instead of silently pretending to pay.
type NoSettler struct{}

func (NoSettler) Settle(invoice string) error {
	return fmt.Errorf("no wallet connect URI configured, dropping invoice")
}
