// Package main provides the entry point for the Vault Atlas application.
package main

import (
	"log"
	"os"
	"time"

	fyneapp "fyne.io/fyne/v2/app"

	"vault-atlas/internal/app"
	"vault-atlas/internal/assets"
	"vault-atlas/internal/mapstore"
	"vault-atlas/internal/vault"
	"vault-atlas/ui/mainwindow"
	"vault-atlas/ui/prefs"
)

const (
	appTitle   = "Vault Atlas"
	appVersion = "0.1.0"

	// watchSettle is the coalescing window for vault filesystem events.
	watchSettle = 300 * time.Millisecond
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Printf("Starting %s v%s", appTitle, appVersion)

	appPrefs := prefs.Load()

	root := appPrefs.String(prefs.KeyVaultRoot)
	if len(os.Args) > 1 {
		root = os.Args[1]
	}
	if root == "" {
		log.Fatal("no vault directory; pass one as the first argument")
	}
	if info, err := os.Stat(root); err != nil || !info.IsDir() {
		log.Fatalf("vault root %s is not a directory", root)
	}
	appPrefs.SetString(prefs.KeyVaultRoot, root)

	vaultIx := vault.NewIndex(root)
	if err := vaultIx.Scan(); err != nil {
		log.Fatalf("scanning vault %s: %v", root, err)
	}
	assetIx := assets.NewIndex()
	if err := assetIx.Scan(root); err != nil {
		log.Fatalf("indexing vault images: %v", err)
	}
	log.Printf("Vault %s: %d maps, %d images", root, len(vaultIx.Maps()), assetIx.Len())

	state := app.NewState(mapstore.NewStore(mapstore.OSFileIO{}), vaultIx, assetIx)

	watcher := vault.NewWatcher(root, watchSettle, state.AbsorbVaultEvents)
	if err := watcher.Start(); err != nil {
		log.Printf("vault watcher disabled: %v", err)
	} else {
		defer watcher.Stop()
	}

	fyneApp := fyneapp.NewWithID("vault-atlas")
	win := mainwindow.New(fyneApp, state, appPrefs)

	if last := appPrefs.String(prefs.KeyLastMap); last != "" {
		if err := state.OpenMap(last); err != nil {
			log.Printf("cannot reopen %s: %v", last, err)
		}
	}

	win.SetOnClosed(func() {
		size := win.Canvas().Size()
		appPrefs.SetFloat(prefs.KeyWindowW, float64(size.Width))
		appPrefs.SetFloat(prefs.KeyWindowH, float64(size.Height))
		if err := appPrefs.Save(); err != nil {
			log.Printf("saving preferences: %v", err)
		}
	})

	win.ShowAndRun()
}
