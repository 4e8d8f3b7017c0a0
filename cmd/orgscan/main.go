// Orgscan - organization-wide resource inventory reports.
package main

func main() {
	Execute()
}
