// exportctl runs order exports and maintenance tasks from the command line.
//
// Usage:
//
//	# Export every mirrored order processed on the given days
//	exportctl export --option dateRange --start 2024-03-01 --end 2024-03-07
//
//	# Export specific orders
//	exportctl export --ids gid://shopify/Order/1,gid://shopify/Order/2
//
//	# Pull orders from Shopify into the local mirror
//	exportctl sync
//
//	# Show recent exports
//	exportctl history --limit 20
//
//	# Hash an admin API key for ADMIN_API_KEY_HASH
//	exportctl hash-key <key>
package main

func main() {
	Execute()
}
