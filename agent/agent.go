package agent

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/nbd-wtf/go-nostr"
	"github.com/sasha-s/go-deadlock"
	"github.com/spf13/viper"
	"nostrich/engine/actors"
	"nostrich/engine/library"
	"nostrich/inference"
	"nostrich/messaging/composer"
	"nostrich/messaging/monitors"
	"nostrich/payments"
)

type State int

const (
	Idle State = iota
	Initializing
	Running
	ShuttingDown
	Stopped
)

func (s State) String() string {
	switch s {
	case Idle:
		return "Idle"
	case Initializing:
		return "Initializing"
	case Running:
		return "Running"
	case ShuttingDown:
		return "ShuttingDown"
	case Stopped:
		return "Stopped"
	}
	return "unknown"
}

// Agent wires the monitors, the inference client, the payment queue and the
// relay gateway together and owns the process lifecycle.
type Agent struct {
	conf    *viper.Viper
	gateway monitors.Gateway
	queue   *payments.Queue
	infer   *inference.Client
	compose *composer.Composer
	wallet  library.Wallet

	replies  *monitors.Monitor
	mentions *monitors.Monitor
	receipts *monitors.Monitor
	topics   *monitors.PollMonitor

	state     State
	stateMu   *deadlock.Mutex
	startedAt nostr.Timestamp
}

func New(conf *viper.Viper, gateway monitors.Gateway, settler payments.Settler) *Agent {
	return &Agent{
		conf:    conf,
		gateway: gateway,
		queue:   payments.NewQueue(settler),
		stateMu: &deadlock.Mutex{},
	}
}

func (a *Agent) State() State {
	a.stateMu.Lock()
	defer a.stateMu.Unlock()
	return a.state
}

func (a *Agent) setState(s State) {
	a.stateMu.Lock()
	a.state = s
	a.stateMu.Unlock()
	library.LogCLI("agent state: "+s.String(), 4)
}

// Start initializes identity and profile, starts all monitors concurrently
// and returns a blocking shutdown callback. If startup fails partway the
// shutdown path still runs, so anything already on the payment queue is
// drained before the error comes back.
func (a *Agent) Start() (func(), error) {
	a.setState(Initializing)
	a.wallet = actors.MyWallet()
	a.startedAt = nostr.Now()
	a.infer = inference.New(
		a.conf.GetString("inferenceURL"),
		a.conf.GetString("inferenceModel"),
		a.conf.GetString("inferenceKey"),
	)
	a.compose = composer.New(a.wallet.Account, a.conf.GetStringSlice("topics"), a.conf.GetInt("topicTags"))
	a.ensureProfile()
	if err := a.startMonitors(); err != nil {
		a.Stop()
		return nil, err
	}
	monitors.WatchSleep()
	a.setState(Running)
	return a.Stop, nil
}

func (a *Agent) startMonitors() error {
	dryRun := a.conf.GetBool("doNotPublish")
	look := a.conf.GetDuration("lookbackWindow")
	since := nostr.Timestamp(time.Now().Add(-look).Unix())
	mentionSince := a.startedAt

	a.replies = monitors.New("replies", a.wallet, a.gateway, monitors.LoadDedup("replies"), dryRun)
	err := a.replies.Start(nostr.Filters{{
		Kinds: []int{actors.KindNote, actors.KindComment},
		Tags:  nostr.TagMap{"p": []string{a.wallet.Account}},
		Since: &since,
	}}, a.replyEligible, a.replyTo)
	if err != nil {
		return err
	}

	a.mentions = monitors.New("mentions", a.wallet, a.gateway, monitors.LoadDedup("mentions"), dryRun)
	err = a.mentions.Start(nostr.Filters{{
		Kinds: []int{actors.KindNote},
		Since: &mentionSince,
	}}, a.mentionEligible, a.mentionReply)
	if err != nil {
		return err
	}

	a.receipts = monitors.New("receipts", a.wallet, a.gateway, monitors.LoadDedup("receipts"), dryRun)
	err = a.receipts.Start(nostr.Filters{{
		Kinds: []int{actors.KindZapReceipt},
		Tags:  nostr.TagMap{"p": []string{a.wallet.Account}},
		Since: &since,
	}}, a.receiptEligible, a.thank)
	if err != nil {
		return err
	}

	a.topics = monitors.NewPoll("topics", a.wallet, a.gateway, monitors.LoadDedup("topics"), dryRun,
		a.conf.GetStringSlice("topics"),
		a.conf.GetInt("topicSample"),
		a.conf.GetDuration("pollInterval"),
		look,
		a.conf.GetDuration("queryTimeout"),
	)
	a.topics.Start(a.replyToBest, a.synthesize)
	return nil
}

// Stop drains the payment queue first so no settlement obligation is lost,
// then closes every subscription and waits for the monitors to wind down.
// Safe to call more than once.
func (a *Agent) Stop() {
	a.stateMu.Lock()
	if a.state == ShuttingDown || a.state == Stopped {
		a.stateMu.Unlock()
		return
	}
	a.state = ShuttingDown
	a.stateMu.Unlock()
	library.LogCLI("agent state: ShuttingDown", 4)
	a.queue.DrainRemaining()
	for _, m := range []*monitors.Monitor{a.replies, a.mentions, a.receipts} {
		if m != nil {
			m.Stop()
		}
	}
	if a.topics != nil {
		a.topics.Stop()
	}
	actors.Shutdown()
	actors.GetWaitGroup().Wait()
	a.setState(Stopped)
}

// ensureProfile checks the network for our kind 0. If nothing shows up within
// profileWait we assume there is none and publish a fresh one from config.
func (a *Agent) ensureProfile() {
	window := a.conf.GetDuration("profileWait")
	_, found := a.gateway.FetchOne(nostr.Filter{
		Kinds:   []int{actors.KindProfile},
		Authors: []string{a.wallet.Account},
	}, window)
	if found {
		library.LogCLI("found existing profile for "+a.wallet.Account, 4)
		return
	}
	profile := library.Profile{
		Name:  a.conf.GetString("agentName"),
		About: a.conf.GetString("agentAbout"),
		Lud16: a.conf.GetString("lud16"),
	}
	if len(profile.Lud16) > 0 {
		if lud06, ok := actors.Lud16ToLud06(profile.Lud16); ok {
			profile.Lud06 = lud06
		}
	}
	b, err := json.Marshal(profile)
	if err != nil {
		library.LogCLI(err.Error(), 1)
		return
	}
	event := nostr.Event{
		PubKey:    a.wallet.Account,
		CreatedAt: nostr.Now(),
		Kind:      actors.KindProfile,
		Content:   string(b),
	}
	if err := event.Sign(a.wallet.PrivateKey); err != nil {
		library.LogCLI(err.Error(), 1)
		return
	}
	if a.conf.GetBool("doNotPublish") {
		return
	}
	if a.gateway.Publish(event) == 0 {
		library.LogCLI("could not publish profile to any relay", 2)
	}
}

func (a *Agent) Wallet() library.Wallet {
	return a.wallet
}

func (a *Agent) QueueDepth() int {
	return a.queue.Depth()
}

func (a *Agent) HandledCounts() map[string]int {
	counts := make(map[string]int)
	for _, m := range []*monitors.Monitor{a.replies, a.mentions, a.receipts} {
		if m != nil {
			counts[m.Name()] = m.Handled()
		}
	}
	if a.topics != nil {
		counts[a.topics.Name()] = a.topics.Handled()
	}
	return counts
}

func (a *Agent) persona() string {
	return fmt.Sprintf("You are %s, %s. Keep replies short and conversational.",
		a.conf.GetString("agentName"), a.conf.GetString("agentAbout"))
}

func (a *Agent) chat(messages []inference.Message) (string, error) {
	result, err := a.infer.Chat(messages)
	if err != nil {
		return "", err
	}
	a.queue.Enqueue(result.Invoice)
	return result.Text, nil
}
