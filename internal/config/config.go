package config

import (
	"math/big"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/goatnetwork/goat-staking/internal/types"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

var AppConfig Config

func InitConfig() {
	// .env is optional, real environment wins
	_ = godotenv.Load()

	viper.AutomaticEnv()

	// Default config
	viper.SetDefault("L2_RPC", "http://localhost:8545")
	viper.SetDefault("L2_JWT_SECRET", "")
	viper.SetDefault("L2_CHAIN_ID", "11155111")
	viper.SetDefault("POOL_CONTRACT", "")
	viper.SetDefault("STAKING_TOKEN_CONTRACT", "")
	viper.SetDefault("REWARD_TOKEN_CONTRACT", "")
	viper.SetDefault("OWNER_ADDRESS", "")
	viper.SetDefault("ACCOUNT_PRIVATE_KEY", "")
	viper.SetDefault("TOKEN_DECIMALS", 18)
	viper.SetDefault("POLL_INTERVAL", "12s")
	viper.SetDefault("READ_TIMEOUT", "15s")
	viper.SetDefault("RECEIPT_POLL_INTERVAL", "3s")
	viper.SetDefault("HTTP_PORT", "8080")
	viper.SetDefault("HTTP_JWT_SECRET", "")
	viper.SetDefault("DB_DIR", "/app/db")
	viper.SetDefault("LOG_LEVEL", "info")

	logLevel, err := logrus.ParseLevel(strings.ToLower(viper.GetString("LOG_LEVEL")))
	if err != nil {
		logrus.Fatalf("Invalid log level: %v", err)
	}

	l2ChainId, err := strconv.ParseInt(viper.GetString("L2_CHAIN_ID"), 10, 64)
	if err != nil {
		logrus.Fatalf("Failed to parse l2 chain id: %v", err)
	}

	decimals := viper.GetInt("TOKEN_DECIMALS")
	if decimals < 0 || decimals > 36 {
		logrus.Fatalf("Invalid token decimals: %d", decimals)
	}

	accountAddress := ""
	if key := viper.GetString("ACCOUNT_PRIVATE_KEY"); key != "" {
		accountAddress, err = types.PrivateKeyToGethAddress(key)
		if err != nil {
			logrus.Fatalf("Failed to parse account private key: %v, given private key length %d", err, len(key))
		}
	}

	AppConfig = Config{
		L2RPC:                viper.GetString("L2_RPC"),
		L2JwtSecret:          viper.GetString("L2_JWT_SECRET"),
		L2ChainId:            big.NewInt(l2ChainId),
		PoolContract:         mustAddress("POOL_CONTRACT"),
		StakingTokenContract: mustAddress("STAKING_TOKEN_CONTRACT"),
		RewardTokenContract:  mustAddress("REWARD_TOKEN_CONTRACT"),
		OwnerAddress:         mustAddress("OWNER_ADDRESS"),
		AccountPriKey:        strings.TrimPrefix(viper.GetString("ACCOUNT_PRIVATE_KEY"), "0x"),
		AccountAddress:       accountAddress,
		TokenDecimals:        int32(decimals),
		PollInterval:         viper.GetDuration("POLL_INTERVAL"),
		ReadTimeout:          viper.GetDuration("READ_TIMEOUT"),
		ReceiptPollInterval:  viper.GetDuration("RECEIPT_POLL_INTERVAL"),
		HTTPPort:             viper.GetString("HTTP_PORT"),
		HTTPJwtSecret:        viper.GetString("HTTP_JWT_SECRET"),
		DbDir:                viper.GetString("DB_DIR"),
		LogLevel:             logLevel,
	}

	if AppConfig.PollInterval <= 0 {
		logrus.Warnf("Poll interval %v is not positive, set to 12s", AppConfig.PollInterval)
		AppConfig.PollInterval = 12 * time.Second
	}
	if AppConfig.ReceiptPollInterval <= 0 {
		logrus.Warnf("Receipt poll interval %v is not positive, set to 3s", AppConfig.ReceiptPollInterval)
		AppConfig.ReceiptPollInterval = 3 * time.Second
	}

	logrus.Infof("Init config, Pool %s, Owner %s, Account %q, PollInterval %v",
		AppConfig.PoolContract, AppConfig.OwnerAddress, AppConfig.AccountAddress, AppConfig.PollInterval)

	logrus.SetOutput(os.Stdout)
	logrus.SetLevel(AppConfig.LogLevel)
}

func mustAddress(key string) string {
	value := strings.TrimSpace(viper.GetString(key))
	if !common.IsHexAddress(value) {
		logrus.Fatalf("Invalid %s: %q", key, value)
	}
	return value
}

type Config struct {
	L2RPC                string
	L2JwtSecret          string
	L2ChainId            *big.Int
	PoolContract         string
	StakingTokenContract string
	RewardTokenContract  string
	OwnerAddress         string
	AccountPriKey        string
	AccountAddress       string
	TokenDecimals        int32
	PollInterval         time.Duration
	ReadTimeout          time.Duration
	ReceiptPollInterval  time.Duration
	HTTPPort             string
	HTTPJwtSecret        string
	DbDir                string
	LogLevel             logrus.Level
}
