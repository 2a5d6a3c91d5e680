package detection

var Pick = pick
