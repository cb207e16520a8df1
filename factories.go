package intent

// MainDescriptor addresses the main entry point of component.
func MainDescriptor(component ComponentName) *Descriptor {
	d := NewAction(ActionMain)
	d.SetComponent(component)
	d.AddCategory(CategoryLauncher)
	return d
}

// MainSelectorDescriptor is a launcher descriptor whose target is found
// through a selector carrying selectorAction and selectorCategory.
func MainSelectorDescriptor(selectorAction, selectorCategory string) *Descriptor {
	d := NewAction(ActionMain)
	d.AddCategory(CategoryLauncher)
	sel := NewAction(selectorAction)
	sel.AddCategory(selectorCategory)
	d.selector = sel
	return d
}

// RestartTaskDescriptor is MainDescriptor with the new-task and clear-task
// flags set.
func RestartTaskDescriptor(component ComponentName) *Descriptor {
	d := MainDescriptor(component)
	d.AddFlags(FlagActivityNewTask | FlagActivityClearTask)
	return d
}

// Chooser wraps target in a chooser descriptor. An empty title is omitted.
func Chooser(target *Descriptor, title string) *Descriptor {
	d := NewAction(ActionChooser)
	d.PutExtra(ExtraDescriptor, DescriptorValue(target))
	if title != "" {
		d.PutExtra(ExtraTitle, String(title))
	}
	return d
}
