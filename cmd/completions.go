package cmd

import (
	"strings"

	"github.com/spf13/cobra"
)

// completeClips returns clip names for the first argument.
func completeClips(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 || ctx == nil || ctx.Clips == nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}

	docs, err := ctx.Clips.List()
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}

	var completions []string
	for _, d := range docs {
		if strings.HasPrefix(d.Name, toComplete) {
			completions = append(completions, d.Name+"\t"+d.Name+" clip")
		}
	}
	return completions, cobra.ShellCompDirectiveNoFileComp
}

// completeScopes suggests edit modes for --scope.
func completeScopes(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	scopes := []string{
		"global\tevery bone, property and event",
		"events\tthe event list",
		"bone:\tone bone",
		"property:\tone property track",
	}

	var filtered []string
	for _, s := range scopes {
		if strings.HasPrefix(strings.Split(s, "\t")[0], toComplete) {
			filtered = append(filtered, s)
		}
	}
	return filtered, cobra.ShellCompDirectiveNoFileComp | cobra.ShellCompDirectiveNoSpace
}
