package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"math/big"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/dmtrr0/evmsweep/internal/activity"
	"github.com/dmtrr0/evmsweep/internal/config"
	"github.com/dmtrr0/evmsweep/internal/relay"
	"github.com/dmtrr0/evmsweep/internal/sweep"
)

func main() {
	_ = godotenv.Load()
	_ = godotenv.Overload(".env.local")

	logCfg := zap.NewDevelopmentConfig()
	logCfg.DisableStacktrace = true
	log, err := logCfg.Build()
	if err != nil {
		die("logger: " + err.Error())
	}
	defer log.Sync()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg := config.Load()
	reg, err := config.LoadRegistry(cfg.NetworksFile)
	if err != nil {
		die(err.Error())
	}

	reader := bufio.NewReader(os.Stdin)

	netKey := cfg.Network
	if netKey == "" {
		fmt.Println("Known networks:", strings.Join(reg.Keys(), ", "))
		netKey = readLine(reader, "Network key: ")
	}
	net, ok := reg[netKey]
	if !ok {
		die("unknown network key: " + netKey)
	}

	node, err := sweep.Dial(net.RPCURL)
	if err != nil {
		die("dial rpc: " + err.Error())
	}
	defer node.Close()

	chainID := big.NewInt(net.ChainID)
	if net.ChainID == 0 {
		chainID, err = node.ChainID(ctx)
		if err != nil {
			die("chain id: " + err.Error())
		}
	}

	channel, err := sweep.SelectChannel(net)
	if err != nil {
		die(err.Error())
	}

	printConfig(cfg, netKey, net, chainID, channel)

	pkHex := readPassword("Sender private key: ")
	signer, err := sweep.NewKeySigner(pkHex, chainID)
	if err != nil {
		die("bad private key: " + err.Error())
	}
	bal, err := node.BalanceAt(ctx, signer.Address())
	if err != nil {
		die("balance: " + err.Error())
	}
	fmt.Println("  from:", signer.Address().Hex(), "| balance:", sweep.FormatEther(bal), "ETH")

	tokenStr := readLine(reader, "Token address (empty for native coin): ")
	var token common.Address
	isToken := tokenStr != ""
	if isToken {
		if !common.IsHexAddress(tokenStr) {
			die("bad token address")
		}
		token = common.HexToAddress(tokenStr)
	}

	toStr := readLine(reader, "Recipient address: ")
	if !common.IsHexAddress(toStr) {
		die("bad recipient address")
	}
	to := common.HexToAddress(toStr)

	amountStr := readLine(reader, `Amount (or "ALL"): `)
	drainAll := strings.EqualFold(strings.TrimSpace(amountStr), "all")

	mul := readLine(reader, fmt.Sprintf("Fee multiplier [%s]: ", cfg.FeeMultiplier))
	if mul == "" {
		mul = cfg.FeeMultiplier
	}
	if _, err := sweep.ScaleDecimal(big.NewInt(1), mul); err != nil {
		die("bad fee multiplier: " + err.Error())
	}

	rec := activity.NewFileRecorder(cfg.ActivityFile, log)
	estimator := sweep.NewEstimator(node, log)

	tx := &sweep.PendingTx{To: to}
	var amountDisplay string

	if isToken {
		dec, err := sweep.TokenDecimals(ctx, node, token)
		if err != nil {
			die("token decimals: " + err.Error())
		}
		tokenBal, err := sweep.TokenBalance(ctx, node, token, signer.Address())
		if err != nil {
			die("token balance: " + err.Error())
		}
		fmt.Println("  token balance:", formatUnits(tokenBal, dec))

		var amount *big.Int
		if drainAll {
			// Gas is paid in the native coin, so the full raw token
			// balance transfers without a reservation step.
			amount = tokenBal
		} else {
			amount, err = parseUnits(amountStr, dec)
			if err != nil {
				die("bad amount: " + err.Error())
			}
			if tokenBal.Cmp(amount) < 0 {
				die("token balance below requested amount")
			}
		}
		data := sweep.EncodeERC20Transfer(to, amount)
		tx.To = token
		tx.Recipient = to
		tx.Data = data
		tx.GasLimit = sweep.EstimateTokenTransferGas(ctx, node, signer.Address(), token, data, cfg.GasBufferPct)
		amountDisplay = formatUnits(amount, dec) + " tokens"
	} else {
		tx.GasLimit = sweep.NativeTransferGas
		if drainAll {
			loop := &sweep.DrainLoop{
				Balances:      node,
				Estimator:     estimator,
				Recorder:      rec,
				Log:           log,
				FeeMultiplier: mul,
			}
			amount, err := loop.Resolve(ctx, signer.Address())
			if err != nil {
				die("drain: " + err.Error())
			}
			tx.Value = amount
		} else {
			amount, err := parseETH(amountStr)
			if err != nil {
				die("bad amount: " + err.Error())
			}
			tx.Value = amount
		}
		amountDisplay = sweep.FormatEther(tx.Value) + " ETH"
	}

	quote, err := estimator.Estimate(ctx, mul)
	if err != nil {
		die(err.Error())
	}

	cyan := color.New(color.FgCyan)
	cyan.Println("\n=== PREVIEW ===")
	fmt.Println("Recipient :", to.Hex())
	fmt.Println("Amount    :", amountDisplay)
	fmt.Println("Channel   :", channel.Kind.String(), "→", channel.URL)
	fmt.Println("Fees      :", quote.String())
	fmt.Println("Gas limit :", tx.GasLimit)
	cyan.Println("===============")
	if !yes(readLine(reader, "Proceed? [y/N]: ")) {
		fmt.Println("Declined, nothing sent.")
		return
	}

	sender := &sweep.Sender{
		ChainID:       chainID,
		Channel:       channel,
		Nonces:        node,
		Broadcast:     node,
		Signer:        signer,
		Estimator:     estimator,
		Recorder:      rec,
		Log:           log,
		FeeMultiplier: mul,
		ConfirmWait:   time.Duration(cfg.ConfirmWaitSec) * time.Second,
	}
	if channel.Kind == sweep.ChannelPrivate {
		sender.Relay = relay.NewClient(channel.URL, channel.AuthToken)
	}

	outcome, err := sender.Send(ctx, tx)
	if err != nil {
		if errors.Is(err, sweep.ErrRetriesExhausted) {
			color.Red("Gave up after %d attempts.", outcome.Attempts)
		}
		die(err.Error())
	}

	switch outcome.Status {
	case sweep.StatusConfirmed:
		color.Green("Confirmed in block %s: %s", outcome.BlockNumber, outcome.TxHash.Hex())
	case sweep.StatusRelayAccepted:
		color.Green("Relay accepted: %s", outcome.TxHash.Hex())
		fmt.Println("Relay response:", strings.TrimSpace(outcome.RelayBody))
	}
}

func printConfig(cfg config.Settings, key string, net config.Network, chainID *big.Int, ch sweep.BroadcastChannel) {
	fmt.Println("=== CONFIG ===")
	fmt.Println("Network      :", key, "("+net.Name+")")
	fmt.Println("RPC_URL      :", net.RPCURL)
	fmt.Println("CHAIN_ID     :", chainID.String())
	fmt.Println("Channel      :", ch.Kind.String())
	if ch.Kind == sweep.ChannelPrivate {
		fmt.Println("Relay        :", ch.URL)
		if ch.AuthToken != "" {
			fmt.Println("Relay auth   :", maskHex(ch.AuthToken))
		}
	}
	fmt.Println("Fee mult     :", cfg.FeeMultiplier)
	fmt.Println("Activity log :", cfg.ActivityFile)
	fmt.Println("==============")
}
