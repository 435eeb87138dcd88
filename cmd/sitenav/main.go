// Command sitenav is a website navigation assistant.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/custodia-labs/sitenav/internal/adapters/driven/ai"
	"github.com/custodia-labs/sitenav/internal/adapters/driven/auth"
	"github.com/custodia-labs/sitenav/internal/adapters/driven/config/file"
	"github.com/custodia-labs/sitenav/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/sitenav/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/sitenav/internal/adapters/driven/web"
	"github.com/custodia-labs/sitenav/internal/adapters/driving/cli"
	"github.com/custodia-labs/sitenav/internal/core/domain"
	"github.com/custodia-labs/sitenav/internal/core/ports/driven"
	"github.com/custodia-labs/sitenav/internal/core/services"
	"github.com/custodia-labs/sitenav/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	configStore, err := file.NewConfigStore("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to open config: %v\n", err)
		return err
	}

	settingsService := services.NewSettingsService(configStore, ai.NewConfigValidator())
	settings, err := settingsService.Get()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to load settings: %v\n", err)
		return err
	}

	store, closeStore, err := openConversationStore(settings.Storage)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to open conversation store: %v\n", err)
		return err
	}
	defer closeStore()

	gateway := openGateway(settings)
	if gateway != nil {
		defer gateway.Close()
	}

	session := auth.NewSession(configStore, settings.Auth.TokenTTL)

	chatService := services.NewChatService(store, gateway, session, services.ChatOptions{
		GatewayTimeout: settings.Chat.GatewayTimeout,
		HistoryWindow:  settings.Chat.HistoryWindow,
	})
	askService := services.NewAskService(gateway, settings.Chat.GatewayTimeout, settings.Web.MaxPageChars)
	accountService := services.NewAccountService(session, session)

	if prompts, err := file.NewPromptStore(""); err != nil {
		logger.Warn("Custom prompts unavailable: %v", err)
	} else {
		chatService.SetPromptStore(prompts)
		askService.SetPromptStore(prompts)
		watchPrompts(ctx, prompts)
	}

	cli.SetVersion(version)
	cli.SetServices(cli.Services{
		Chat:      chatService,
		Ask:       askService,
		Concierge: askService,
		Invoker:   askService,
		Settings:  settingsService,
		Account:   accountService,
	})

	return cli.Execute(ctx)
}

// openConversationStore opens the configured backend and returns its closer.
func openConversationStore(backend domain.StorageBackend) (driven.ConversationStore, func(), error) {
	if backend == domain.StorageMemory {
		logger.Debug("Using in-memory conversation store")
		return memory.NewConversationStore(), func() {}, nil
	}

	store, err := sqlite.NewStore("")
	if err != nil {
		return nil, nil, err
	}
	logger.Debug("Using SQLite conversation store at %s", store.Path())
	return store.ConversationStore(), func() {
		if err := store.Close(); err != nil {
			logger.Warn("Failed to close conversation store: %v", err)
		}
	}, nil
}

// openGateway builds the decorated LLM gateway. A missing or unreachable
// provider is not fatal: settings commands must still work, and chat flows
// report the gateway as unavailable.
func openGateway(settings *domain.AppSettings) driven.LLMGateway {
	gateway, err := ai.CreateAndValidateGateway(&settings.LLM)
	if err != nil {
		logger.Warn("%v", err)
		return nil
	}
	if gateway == nil {
		logger.Debug("LLM provider not configured")
		return nil
	}

	var fetcher driven.PageFetcher
	if settings.Web.FetchEnabled {
		fetcher = web.NewFetcher(web.Config{
			UserAgent: settings.Web.UserAgent,
			MaxChars:  settings.Web.MaxPageChars,
		})
	}
	return ai.Decorate(gateway, settings.LLM, fetcher)
}

// watchPrompts drains prompt change notifications until ctx ends.
func watchPrompts(ctx context.Context, prompts *file.PromptStore) {
	changes, err := prompts.Watch(ctx)
	if err != nil {
		logger.Debug("Prompt watcher disabled: %v", err)
		return
	}
	go func() {
		for name := range changes {
			logger.Info("Reloaded prompt %s", name)
		}
	}()
}
