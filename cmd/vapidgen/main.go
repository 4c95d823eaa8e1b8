package main

import (
	"fmt"
	"log"

	"github.com/transitlk/notifier/internal/push"
)

func main() {
	pub, priv, err := push.GenerateVAPIDKeys()
	if err != nil {
		log.Fatalf("generate VAPID keys: %v", err)
	}

	fmt.Printf("NOTIFIER_VAPID_PUBLIC_KEY=%s\n", pub)
	fmt.Printf("NOTIFIER_VAPID_PRIVATE_KEY=%s\n", priv)
}
