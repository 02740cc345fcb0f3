package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"recipe-share/internal/controller"
	"recipe-share/internal/models"
)

const help = `Commands:
  list                 show all recipes
  search <ingredient>  show recipes using an ingredient
  show <id>            show one recipe
  new                  create a recipe
  edit <id>            edit one of your recipes
  delete <id>          delete one of your recipes
  quit                 leave`

type shell struct {
	recipes *controller.RecipeListController
	user    string
	in      *bufio.Reader
	out     io.Writer
}

func newShell(recipes *controller.RecipeListController, user string, in *bufio.Reader, out io.Writer) *shell {
	return &shell{recipes: recipes, user: user, in: in, out: out}
}

func (s *shell) run(ctx context.Context) error {
	s.recipes.Refresh(ctx)
	s.printList()
	fmt.Fprintln(s.out, help)

	for {
		line, err := s.ask("> ")
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		cmd, arg, _ := strings.Cut(line, " ")
		arg = strings.TrimSpace(arg)
		switch cmd {
		case "":
		case "list":
			s.recipes.Refresh(ctx)
			s.printList()
		case "search":
			if arg == "" {
				s.recipes.Refresh(ctx)
			} else {
				s.recipes.Search(ctx, arg)
			}
			s.printList()
		case "show":
			s.show(arg)
		case "new":
			err = s.create(ctx)
		case "edit":
			err = s.edit(ctx, arg)
		case "delete":
			err = s.delete(ctx, arg)
		case "quit", "exit":
			return nil
		default:
			fmt.Fprintln(s.out, help)
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

func (s *shell) printList() {
	list := s.recipes.Recipes()
	if len(list) == 0 {
		fmt.Fprintln(s.out, "No recipes")
		return
	}
	for _, r := range list {
		fmt.Fprintf(s.out, "%s  %s (%s)\n", r.ID, r.Title, strings.Join(r.Ingredients, ", "))
	}
}

func (s *shell) show(id string) {
	r, ok := s.recipes.Find(id)
	if !ok {
		fmt.Fprintln(s.out, "Recipe not found")
		return
	}
	fmt.Fprintf(s.out, "%s\n%s\nIngredients: %s\nChef: %s\n", r.Title, r.Description, strings.Join(r.Ingredients, ", "), r.ChefID)
	if r.ImageURL != nil {
		fmt.Fprintf(s.out, "Photo: %s\n", *r.ImageURL)
	}
}

func (s *shell) create(ctx context.Context) error {
	title, description, ingredients, err := s.askFields(models.Recipe{})
	if err != nil {
		return err
	}
	imageURI, err := s.askImage(ctx)
	if err != nil {
		return err
	}
	if !complete(title, description, ingredients) {
		fmt.Fprintln(s.out, "Complete all fields")
		return nil
	}

	res := s.recipes.Create(ctx, title, description, ingredients, s.user, imageURI)
	s.report(res, "Recipe created")
	return nil
}

func (s *shell) edit(ctx context.Context, id string) error {
	r, ok := s.owned(id)
	if !ok {
		return nil
	}
	title, description, ingredients, err := s.askFields(r)
	if err != nil {
		return err
	}
	imageURI, err := s.askImage(ctx)
	if err != nil {
		return err
	}
	if !complete(title, description, ingredients) {
		fmt.Fprintln(s.out, "Complete all fields")
		return nil
	}

	res := s.recipes.Update(ctx, r.ID, title, description, ingredients, imageURI)
	s.report(res, "Recipe updated")
	return nil
}

func (s *shell) delete(ctx context.Context, id string) error {
	r, ok := s.owned(id)
	if !ok {
		return nil
	}
	answer, err := s.ask(fmt.Sprintf("Delete %q? [y/N] ", r.Title))
	if err != nil {
		return err
	}
	if strings.ToLower(answer) != "y" {
		return nil
	}
	s.report(s.recipes.Delete(ctx, r.ID), "Recipe deleted")
	return nil
}

// owned finds a recipe the current user may change.
func (s *shell) owned(id string) (models.Recipe, bool) {
	r, ok := s.recipes.Find(id)
	if !ok {
		fmt.Fprintln(s.out, "Recipe not found")
		return models.Recipe{}, false
	}
	if r.ChefID != s.user {
		fmt.Fprintln(s.out, "You are not allowed to edit this recipe")
		return models.Recipe{}, false
	}
	return r, true
}

// askFields prompts for the text fields, keeping current values on empty input.
func (s *shell) askFields(current models.Recipe) (string, string, []string, error) {
	title, err := s.askDefault("Title", current.Title)
	if err != nil {
		return "", "", nil, err
	}
	description, err := s.askDefault("Description", current.Description)
	if err != nil {
		return "", "", nil, err
	}
	list, err := s.askDefault("Ingredients (comma separated)", strings.Join(current.Ingredients, ", "))
	if err != nil {
		return "", "", nil, err
	}
	return title, description, parseIngredients(list), nil
}

func (s *shell) askImage(ctx context.Context) (string, error) {
	answer, err := s.ask("Photo: [g]allery, [c]amera or empty for none: ")
	if err != nil {
		return "", err
	}
	var uri string
	var ok bool
	switch strings.ToLower(answer) {
	case "g", "gallery":
		uri, ok = s.recipes.PickFromGallery(ctx)
	case "c", "camera":
		uri, ok = s.recipes.TakePhoto(ctx)
	}
	if !ok {
		return "", nil
	}
	return uri, nil
}

func (s *shell) report(res models.Result, success string) {
	if !res.Success {
		fmt.Fprintf(s.out, "Error: %s\n", res.Error)
		return
	}
	fmt.Fprintln(s.out, success)
	s.printList()
}

func (s *shell) askDefault(label, current string) (string, error) {
	prompt := label + ": "
	if current != "" {
		prompt = fmt.Sprintf("%s [%s]: ", label, current)
	}
	answer, err := s.ask(prompt)
	if err != nil {
		return "", err
	}
	if answer == "" {
		return current, nil
	}
	return answer, nil
}

func (s *shell) ask(prompt string) (string, error) {
	fmt.Fprint(s.out, prompt)
	line, err := s.in.ReadString('\n')
	if err != nil && (!errors.Is(err, io.EOF) || line == "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func parseIngredients(list string) []string {
	var out []string
	for _, item := range strings.Split(list, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func complete(title, description string, ingredients []string) bool {
	return title != "" && description != "" && len(ingredients) > 0
}
