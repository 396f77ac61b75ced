// Package view holds the pure derived views over projected leads: search,
// advanced filtering, stage buckets and date ordering. No function here
// modifies its input or reassigns a lead's Index.
package view
