// Package tasks is the Google Tasks adapter.
//
// It implements provider.TaskProvider on top of the Tasks v1 API. Task lists
// are exposed as categories and every task is stamped with the id of the list
// it was read from.
//
// # Example Usage
//
//	client, err := tasks.NewClient(ctx, account.AccessToken)
//	if err != nil {
//	    return err
//	}
//
//	categories, err := client.Categories(ctx)
//	if err != nil {
//	    return err
//	}
//
//	for _, category := range categories {
//	    list, err := client.TasksForCategory(ctx, category)
//	    ...
//	}
package tasks
