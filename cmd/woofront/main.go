// Command woofront runs the multi-tenant storefront gateway.
package main

import "github.com/Singh-Rishabh/WooFrontEnd/cmd/woofront/cmd"

func main() {
	cmd.Execute()
}
