package main

import (
	"fmt"

	"github.com/eiannone/keyboard"
	"github.com/nbd-wtf/go-nostr/nip19"
	"nostrich/agent"
	"nostrich/engine/actors"
	"nostrich/engine/library"
)

// cliListener is a cheap and nasty way to poke at the agent while it runs. It
// listens for keypresses and executes commands.
func cliListener(interrupt chan struct{}, a *agent.Agent) {
	fmt.Println("AGENT CONTROLS:\nw: current wallet\nc: agent config\nd: handled event counts\np: payment queue depth\ns: agent state\nq: to quit\nSee cliListener.go for more")
	for {
		r, k, err := keyboard.GetSingleKey()
		if err != nil {
			// no tty, probably running under a supervisor
			library.LogCLI(err.Error(), 3)
			return
		}
		str := string(r)
		switch str {
		default:
			if k == 13 {
				fmt.Println("\n-----------------------------------")
				break
			}
			if r == 0 {
				break
			}
			fmt.Println("Key " + str + " is not bound to anything. See main.cliListener for more details.")
		case "q":
			close(interrupt)
			return
		case "w":
			npub, _ := nip19.EncodePublicKey(a.Wallet().Account)
			fmt.Printf("Current Wallet: \n%s\n%s\n", a.Wallet().Account, npub)
		case "c":
			fmt.Println("CURRENT CONFIG")
			for key, value := range actors.MakeOrGetConfig().AllSettings() {
				fmt.Printf("\nKey: %s; Value: %v\n", key, value)
			}
		case "d":
			for name, n := range a.HandledCounts() {
				fmt.Printf("%s: %d events handled\n", name, n)
			}
		case "p":
			fmt.Printf("payment queue depth: %d\n", a.QueueDepth())
		case "s":
			fmt.Println(a.State().String())
		}
	}
}
