package actors

import (
	"os"

	"github.com/spf13/viper"
	"nostrich/engine/library"
)

// Event kinds the agent consumes and produces.
const (
	KindProfile    = 0
	KindNote       = 1
	KindComment    = 1111
	KindZapReceipt = 9735
)

// InitConfig sets up our Viper config object
func InitConfig(config *viper.Viper) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		library.LogCLI(err.Error(), 0)
	}
	config.SetDefault("rootDir", homeDir+"/nostrich/")
	config.SetConfigType("yaml")
	config.SetConfigFile(config.GetString("rootDir") + "config.yaml")
	err = config.ReadInConfig()
	if err != nil {
		library.LogCLI(err.Error(), 4)
	}
	config.SetDefault("flatFileDir", "data/")
	config.SetDefault("logLevel", 4)
	config.SetDefault("doNotPublish", false)
	config.SetDefault("relays", []string{"wss://nos.lol", "wss://relay.damus.io", "wss://nostr.mutinywallet.com"})

	config.SetDefault("agentName", "nostrich")
	config.SetDefault("agentAbout", "a large flightless bird that replies to everything")
	config.SetDefault("lud16", "")

	config.SetDefault("inferenceURL", "http://127.0.0.1:8686/chat")
	config.SetDefault("inferenceModel", "default")
	config.SetDefault("inferenceKey", "")

	config.SetDefault("nwcURI", "")
	config.SetDefault("maxInvoiceSats", int64(1000))

	config.SetDefault("topics", []string{"asknostr", "grownostr", "foodstr", "bitcoin", "coffeechain", "plebchain"})
	config.SetDefault("topicSample", 3)
	config.SetDefault("topicTags", 2)
	config.SetDefault("pollInterval", "20m")
	config.SetDefault("lookbackWindow", "1h")

	config.SetDefault("queryTimeout", "5s")
	config.SetDefault("profileWait", "8s")
	config.SetDefault("settleWait", "15s")
	config.SetDefault("staleAfter", "2m")

	// Create our working directory and config file if not exist
	initRootDir(config)
	library.Touch(config.GetString("rootDir") + "config.yaml")
	err = config.WriteConfig()
	if err != nil {
		library.LogCLI(err.Error(), 0)
	}
}

func initRootDir(conf *viper.Viper) {
	_, err := os.Stat(conf.GetString("rootDir"))
	if os.IsNotExist(err) {
		err = os.Mkdir(conf.GetString("rootDir"), 0755)
		if err != nil {
			library.LogCLI(err, 0)
		}
	}
}

var conf *viper.Viper

func MakeOrGetConfig() *viper.Viper {
	return conf
}

func SetConfig(config *viper.Viper) {
	conf = config
}
