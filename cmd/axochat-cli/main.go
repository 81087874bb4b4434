package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/CCBlueX/axochat-client/pkg/axochat"
	"github.com/CCBlueX/axochat-client/pkg/protocol"
)

func main() {
	configPath := flag.String("config", "", "Path to a TOML config file")
	address := flag.String("address", "", "Chat server address (overrides config)")
	token := flag.String("token", "", "JWT for login (overrides config)")
	flag.Parse()

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if *address != "" {
		cfg.Address = *address
	}
	if *token != "" {
		cfg.Token = *token
	}

	session := axochat.New()
	done := make(chan struct{})
	finish := sync.OnceFunc(func() { close(done) })

	session.OnOpen(func(axochat.Transport) {
		logger.Info().Str("address", cfg.Address).Msg("connected")
		if cfg.Token == "" {
			logger.Warn().Msg("no token configured, use /token to request one")
			return
		}
		if err := session.LoginJWT(cfg.Token, cfg.AllowMessages); err != nil {
			logger.Error().Err(err).Msg("login failed to send")
		}
	})
	session.OnClose(func(e axochat.CloseEvent) {
		logger.Info().Int("code", e.Code).Str("reason", e.Reason).Msg("connection closed")
		finish()
	})
	session.OnDecodeError(func(e axochat.DecodeError) {
		logger.Warn().Err(e.Err).Str("raw", e.Raw).Msg("dropped malformed frame")
	})
	session.OnError(func(reason protocol.ErrorReason) {
		logger.Error().Str("reason", string(reason)).Msg("server reported an error")
	})
	session.OnSuccess(func(reason protocol.SuccessReason) {
		logger.Info().Str("reason", string(reason)).Msg("server acknowledged")
	})
	session.OnMessage(func(msg protocol.ChatMessage) {
		fmt.Printf("[%s] %s\n", msg.Author.Name, msg.Content)
	})
	session.OnPrivateMessage(func(msg protocol.ChatMessage) {
		fmt.Printf("[%s -> me] %s\n", msg.Author.Name, msg.Content)
	})
	session.OnNewJWT(func(token string) {
		fmt.Printf("*** new token: %s\n", token)
	})
	session.OnUserCount(func(count protocol.UserCount) {
		fmt.Printf("*** %d connected, %d logged in\n", count.Connections, count.LoggedIn)
	})

	if err := session.Connect(cfg.Address); err != nil {
		logger.Fatal().Err(err).Msg("failed to connect")
	}

	go func() {
		fmt.Println("Type your messages (or /quit to exit):")
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				continue
			}
			if line == "/quit" || line == "/exit" {
				break
			}
			if err := handleLine(session, line); err != nil {
				logger.Error().Err(err).Msg("command failed")
			}
		}
		if err := scanner.Err(); err != nil {
			logger.Error().Err(err).Msg("error reading input")
		}
		session.Disconnect()
		finish()
	}()

	<-done
}

func handleLine(session *axochat.Session, line string) error {
	if !strings.HasPrefix(line, "/") {
		return session.SendMessage(line)
	}

	parts := strings.SplitN(line, " ", 3)
	switch parts[0] {
	case "/w":
		if len(parts) < 3 {
			return fmt.Errorf("usage: /w <name> <message>")
		}
		return session.SendPrivateMessage(parts[1], parts[2])
	case "/ban":
		if len(parts) < 2 {
			return fmt.Errorf("usage: /ban <uuid>")
		}
		return session.BanUser(parts[1])
	case "/unban":
		if len(parts) < 2 {
			return fmt.Errorf("usage: /unban <uuid>")
		}
		return session.UnbanUser(parts[1])
	case "/count":
		return session.RequestUserCount()
	case "/token":
		return session.RequestJWT()
	default:
		return fmt.Errorf("unknown command %q", parts[0])
	}
}
